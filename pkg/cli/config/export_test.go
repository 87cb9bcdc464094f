package config

// NewTestLogger is exported for testing
func NewTestLogger(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewTestAnalysis is exported for testing
func NewTestAnalysis(templatesPath, style string) *Analysis {
	return &Analysis{templatesPath: templatesPath, style: style}
}

// NewTestStorage is exported for testing
func NewTestStorage(backend, dir string) *Storage {
	return &Storage{backend: backend, dir: dir}
}

// NewTestLLM is exported for testing
func NewTestLLM(provider, apiKey, model, baseURL string) *LLM {
	return &LLM{provider: provider, apiKey: apiKey, model: model, baseURL: baseURL}
}
