package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Recall.APIKey)

	out.Journal = cfg.Journal
	redact(&out.Journal.DSN)
	redact(&out.Journal.Password)

	out.Archive = cfg.Archive
	redact(&out.Archive.AccessKey)
	redact(&out.Archive.SecretKey)

	// Copy the token map so callers cannot mutate the original through the
	// redacted copy.
	if cfg.Universe.Tokens != nil {
		out.Universe.Tokens = make(map[string]TokenConfig, len(cfg.Universe.Tokens))
		for k, v := range cfg.Universe.Tokens {
			out.Universe.Tokens[k] = v
		}
	}

	return out
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
