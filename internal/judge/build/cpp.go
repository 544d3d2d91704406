package build

func init() {
	register(Language{
		ID:             "cpp",
		Name:           "GNU C++17",
		SourceFile:     "main.cpp",
		BinaryFile:     "main",
		CompileEnabled: true,
		CompileCmdTpl:  "g++ -O2 -std=c++17 -o {bin} {src}",
		RunCmdTpl:      "{bin}",
	}, []string{"cpp", "c++", "cc"}, []string{".cpp", ".cc", ".cxx"})
}
