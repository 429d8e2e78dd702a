package inspect

import (
	"time"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
)

// MinSecretLength is the shortest SECRET_KEY not reported as weak. HS256
// keys should be at least as long as the hash output.
const MinSecretLength = 32

// SettingReport describes one configuration value without revealing it.
type SettingReport struct {
	Name    string `json:"name"`
	Set     bool   `json:"set"`
	Length  int    `json:"length,omitempty"`
	Preview string `json:"preview,omitempty"`
	Source  string `json:"source"`
	Detail  string `json:"detail,omitempty"`
	Invalid bool   `json:"invalid,omitempty"`
}

// Recommendation is the operator advice printed at the end of a report.
type Recommendation struct {
	OK       bool     `json:"ok"`
	Headline string   `json:"headline"`
	Hints    []string `json:"hints,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Report is the result of inspecting the authentication configuration.
type Report struct {
	EnvFile        config.EnvFileInfo `json:"env_file"`
	Settings       []SettingReport    `json:"settings"`
	Token          TokenCheck         `json:"token"`
	Recommendation Recommendation     `json:"recommendation"`
}

// IsDefaultSecret reports whether secret is empty or the placeholder the
// backend ships with.
func IsDefaultSecret(secret string) bool {
	return secret == "" || secret == config.DefaultSecretPlaceholder
}

// Inspect builds a report for s. It never fails: missing values are
// reported as such.
func Inspect(s *config.Settings) Report {
	return inspectAt(s, time.Now())
}

func inspectAt(s *config.Settings, now time.Time) Report {
	r := Report{EnvFile: s.EnvFile()}

	r.Settings = append(r.Settings, SettingReport{
		Name:    "SECRET_KEY",
		Set:     s.SecretKey != "",
		Length:  len(s.SecretKey),
		Preview: config.RedactSecret(s.SecretKey),
		Source:  s.Source("secret_key"),
	})

	r.Settings = append(r.Settings, SettingReport{
		Name:    "DATABASE_URL",
		Set:     s.DatabaseURL != "",
		Length:  len(s.DatabaseURL),
		Preview: config.RedactURL(s.DatabaseURL),
		Source:  s.Source("database_url"),
	})

	expiry := SettingReport{
		Name:    "ACCESS_TOKEN_EXPIRE_MINUTES",
		Set:     s.AccessTokenExpireMinutes != "",
		Length:  len(s.AccessTokenExpireMinutes),
		Preview: s.AccessTokenExpireMinutes,
		Source:  s.Source("access_token_expire_minutes"),
	}
	ttl, err := TokenTTL(s.AccessTokenExpireMinutes)
	switch {
	case err != nil:
		expiry.Invalid = true
		expiry.Detail = "invalid: " + err.Error()
		ttl = DefaultTokenTTL
	case !expiry.Set:
		expiry.Detail = "not set, backend default " + ttl.String()
	default:
		expiry.Detail = ttl.String()
	}
	r.Settings = append(r.Settings, expiry)

	if s.SecretKey != "" {
		r.Token = checkToken(s.SecretKey, ttl, now)
	}

	r.Recommendation = recommend(s.SecretKey, r)
	for _, problem := range s.Problems() {
		r.Recommendation.Warnings = append(r.Recommendation.Warnings, problem.Error())
	}
	return r
}

func recommend(secret string, r Report) Recommendation {
	var rec Recommendation
	if IsDefaultSecret(secret) {
		rec.Headline = "WARNING: SECRET_KEY is using default value!"
		rec.Hints = []string{"Make sure your .env file has a proper SECRET_KEY"}
	} else {
		rec.OK = true
		rec.Headline = "OK: SECRET_KEY is loaded from .env"
		rec.Hints = []string{
			"If you're still getting 401 errors:",
			"1. Make sure backend was RESTARTED after creating .env",
			"2. Clear localStorage and log in again to get fresh token",
		}
		if len(secret) < MinSecretLength {
			rec.Warnings = append(rec.Warnings, "SECRET_KEY is shorter than 32 bytes, which is weak for HS256")
		}
	}

	for _, sr := range r.Settings {
		if sr.Invalid {
			rec.Warnings = append(rec.Warnings, sr.Name+" is "+sr.Detail)
		}
	}
	if r.Token.Attempted && !r.Token.OK {
		rec.Warnings = append(rec.Warnings, "token round trip failed: "+r.Token.Error)
	}
	return rec
}
