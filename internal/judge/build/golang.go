package build

func init() {
	register(Language{
		ID:             "go",
		Name:           "Go",
		SourceFile:     "main.go",
		BinaryFile:     "main",
		CompileEnabled: true,
		CompileCmdTpl:  "go build -o {bin} {src}",
		RunCmdTpl:      "{bin}",
		Env:            []string{"GOFLAGS=-mod=mod", "CGO_ENABLED=0"},
		TimeMultiplier: 2,
	}, []string{"go", "golang"}, []string{".go"})
}
