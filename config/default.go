package config

func GetDefault() Config {
	return Config{
		Types: []string{
			"feat",
			"fix",
			"perf",
			"refactor",
			"docs",
			"style",
			"test",
			"build",
			"ci",
			"chore",
			"revert",
		},
		CoreModulePatterns:     nil,
		LargeRefactorThreshold: 25,
		MaxSubjectLength:       72,
	}
}
