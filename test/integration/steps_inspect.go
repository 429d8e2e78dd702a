package integration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/hmsctl/pkg/config"
	"github.com/doodlesbykumbi/hmsctl/pkg/inspect"
)

type inspection struct {
	dir    string
	report inspect.Report
}

func (s *StepsContext) registerInspectSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the \.env file contains:$`, s.theEnvFileContains)
	sc.Step(`^I inspect the configuration$`, s.iInspectTheConfiguration)
	sc.Step(`^the recommendation should be "([^"]*)"$`, s.theRecommendationShouldBe)
	sc.Step(`^the token round trip should succeed$`, s.theTokenRoundTripShouldSucceed)
	sc.Step(`^the setting "([^"]*)" should come from "([^"]*)"$`, s.theSettingShouldComeFrom)
}

func (s *StepsContext) theEnvFileContains(content *godog.DocString) error {
	dir, err := os.MkdirTemp("", "hmsctl-inspect-")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content.Content), 0o600); err != nil {
		return err
	}
	s.inspection = &inspection{dir: dir}
	return nil
}

func (s *StepsContext) iInspectTheConfiguration() error {
	if s.inspection == nil {
		return fmt.Errorf("no .env file was written")
	}
	defer func() { _ = os.RemoveAll(s.inspection.dir) }()

	settings, err := config.Load(config.Options{
		ConfigPath: s.inspection.dir,
		EnvFile:    filepath.Join(s.inspection.dir, ".env"),
		Lookup: func(string) (string, bool) {
			return "", false
		},
	})
	if err != nil {
		return err
	}
	s.inspection.report = inspect.Inspect(settings)
	return nil
}

func (s *StepsContext) theRecommendationShouldBe(headline string) error {
	if got := s.inspection.report.Recommendation.Headline; got != headline {
		return fmt.Errorf("expected recommendation %q, got %q", headline, got)
	}
	return nil
}

func (s *StepsContext) theTokenRoundTripShouldSucceed() error {
	tok := s.inspection.report.Token
	if !tok.Attempted || !tok.OK {
		return fmt.Errorf("token round trip failed: %s", tok.Error)
	}
	return nil
}

func (s *StepsContext) theSettingShouldComeFrom(name, source string) error {
	for _, sr := range s.inspection.report.Settings {
		if sr.Name == name {
			if sr.Source != source {
				return fmt.Errorf("expected %s from %s, got %s", name, source, sr.Source)
			}
			return nil
		}
	}
	return fmt.Errorf("setting %s not reported", name)
}
