package build

func init() {
	register(Language{
		ID:             "python",
		Name:           "Python 3",
		SourceFile:     "main.py",
		CompileEnabled: false,
		RunCmdTpl:      "python3 {src}",
		TimeMultiplier: 3,
	}, []string{"python", "python3", "py"}, []string{".py"})
}
