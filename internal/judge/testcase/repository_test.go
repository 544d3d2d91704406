package testcase

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	pkgerrors "gavel/pkg/errors"
)

func writeCase(t *testing.T, root, id, inputName, answerName string) {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if inputName != "" {
		if err := os.WriteFile(filepath.Join(dir, inputName), []byte("1\n"), 0644); err != nil {
			t.Fatalf("write input: %v", err)
		}
	}
	if answerName != "" {
		if err := os.WriteFile(filepath.Join(dir, answerName), []byte("2\n"), 0644); err != nil {
			t.Fatalf("write answer: %v", err)
		}
	}
}

func newRepo(t *testing.T, root string) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{Root: root})
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

func TestDiscoverOrdersCases(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "b", "in.txt", "out.txt")
	writeCase(t, root, "a", "in.txt", "out.txt")
	writeCase(t, root, "c", "in.txt", "out.txt")

	cases, skipped, err := newRepo(t, root).Discover(context.Background())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(cases) != 3 || cases[0].ID != "a" || cases[1].ID != "b" || cases[2].ID != "c" {
		t.Fatalf("expected lexicographic order, got %+v", cases)
	}
}

func TestDiscoverNamingVariants(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "t1", "p2in1.txt", "p2out1.txt")
	writeCase(t, root, "t2", "input.txt", "output.txt")
	writeCase(t, root, "t3", "1.in", "1.ans")

	cases, skipped, err := newRepo(t, root).Discover(context.Background())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", skipped)
	}
	if len(cases) != 3 {
		t.Fatalf("expected 3 cases, got %+v", cases)
	}
	if filepath.Base(cases[0].InputPath) != "p2in1.txt" || filepath.Base(cases[0].AnswerPath) != "p2out1.txt" {
		t.Fatalf("unexpected pairing for t1: %+v", cases[0])
	}
}

func TestDiscoverSkipsMalformed(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "ok", "in.txt", "out.txt")
	writeCase(t, root, "noanswer", "in.txt", "")
	writeCase(t, root, "noinput", "", "out.txt")

	dup := filepath.Join(root, "dup")
	if err := os.MkdirAll(dup, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"in1.txt", "in2.txt", "out.txt"} {
		if err := os.WriteFile(filepath.Join(dup, name), []byte("x\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cases, skipped, err := newRepo(t, root).Discover(context.Background())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(cases) != 1 || cases[0].ID != "ok" {
		t.Fatalf("expected single valid case, got %+v", cases)
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skips, got %+v", skipped)
	}
	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.ID] = s.Reason
	}
	if !strings.Contains(reasons["dup"], "multiple input files") {
		t.Fatalf("expected duplicate input reason, got %q", reasons["dup"])
	}
	if reasons["noanswer"] != "no answer file" {
		t.Fatalf("unexpected reason: %q", reasons["noanswer"])
	}
	if reasons["noinput"] != "no input file" {
		t.Fatalf("unexpected reason: %q", reasons["noinput"])
	}
}

func TestDiscoverIgnoresLooseFiles(t *testing.T) {
	root := t.TempDir()
	writeCase(t, root, "only", "in.txt", "out.txt")
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("notes"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases, _, err := newRepo(t, root).Discover(context.Background())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %+v", cases)
	}
}

func TestDiscoverRootMissing(t *testing.T) {
	repo := newRepo(t, filepath.Join(t.TempDir(), "absent"))
	_, _, err := repo.Discover(context.Background())
	if got := pkgerrors.GetCode(err); got != pkgerrors.TestRootMissing {
		t.Fatalf("expected TestRootMissing, got %v", got)
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	repo := newRepo(t, t.TempDir())
	_, _, err := repo.Discover(context.Background())
	if got := pkgerrors.GetCode(err); got != pkgerrors.NoTestCases {
		t.Fatalf("expected NoTestCases, got %v", got)
	}
}

func TestNewRepositoryValidatesPatterns(t *testing.T) {
	_, err := NewRepository(Config{Root: t.TempDir(), InputPattern: "("})
	if got := pkgerrors.GetCode(err); got != pkgerrors.ValidationFailed {
		t.Fatalf("expected ValidationFailed, got %v", got)
	}
}

func buildPack(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	tw := tar.NewWriter(zw)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zstd: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cases.tar.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return path
}

func TestImportPackRoundTrip(t *testing.T) {
	pack := buildPack(t, map[string]string{
		"case1/in.txt":  "5\n",
		"case1/out.txt": "25\n",
		"case2/in.txt":  "6\n",
		"case2/out.txt": "36\n",
	})

	root := filepath.Join(t.TempDir(), "cases")
	repo := newRepo(t, root)
	if err := repo.ImportPack(context.Background(), pack); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	cases, skipped, err := repo.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(cases) != 2 || len(skipped) != 0 {
		t.Fatalf("expected 2 imported cases, got %+v skipped %+v", cases, skipped)
	}
	content, err := os.ReadFile(cases[0].InputPath)
	if err != nil || string(content) != "5\n" {
		t.Fatalf("imported input corrupted: %q %v", content, err)
	}
}

func TestImportPackRejectsTraversal(t *testing.T) {
	pack := buildPack(t, map[string]string{"../evil.txt": "x"})

	repo := newRepo(t, filepath.Join(t.TempDir(), "cases"))
	err := repo.ImportPack(context.Background(), pack)
	if got := pkgerrors.GetCode(err); got != pkgerrors.PackUnsafePath {
		t.Fatalf("expected PackUnsafePath, got %v", got)
	}
}

func TestImportPackMissingArchive(t *testing.T) {
	repo := newRepo(t, t.TempDir())
	err := repo.ImportPack(context.Background(), filepath.Join(t.TempDir(), "absent.tar.zst"))
	if got := pkgerrors.GetCode(err); got != pkgerrors.PackInvalid {
		t.Fatalf("expected PackInvalid, got %v", got)
	}
}
