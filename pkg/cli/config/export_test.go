package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

func NewSlackForTest(botToken, channel, apiURL string) *Slack {
	return &Slack{
		botToken: botToken,
		channel:  channel,
		apiURL:   apiURL,
	}
}

func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

func NewGenerationForTest(path string) *Generation {
	return &Generation{path: path}
}

func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{dsn: dsn, env: env}
}
