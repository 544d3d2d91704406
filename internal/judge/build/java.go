package build

func init() {
	register(Language{
		ID:             "java",
		Name:           "Java",
		SourceFile:     "Main.java",
		BinaryFile:     "Main.class",
		CompileEnabled: true,
		CompileCmdTpl:  "javac -encoding UTF-8 -d {dir} {src}",
		RunCmdTpl:      "java -XX:+UseSerialGC -cp {dir} Main",
		TimeMultiplier: 2,
	}, []string{"java"}, []string{".java"})
}
