package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

const defaultDotEnvFile = ".env"

// DotEnvTryLoad loads the given .env file into the process environment.
// A missing file is not an error. Variables that are already set are kept.
func DotEnvTryLoad(pathToEnvFile string, setEnvFn func(key string, value string) error) {
	err := DotEnvLoad(pathToEnvFile, setEnvFn)
	if err == nil {
		return
	}

	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("envFile", pathToEnvFile).Msg(".env file does not exist, skipping")
		return
	}

	log.Warn().Err(err).Str("envFile", pathToEnvFile).Msg("Failed to load .env file")
}

// DotEnvLoad parses the .env file strictly and calls setEnvFn for every
// variable that is not yet present in the environment.
func DotEnvLoad(pathToEnvFile string, setEnvFn func(key string, value string) error) error {
	file, err := os.Open(pathToEnvFile)
	if err != nil {
		return errors.Wrap(err, "failed to open .env file")
	}
	defer file.Close()

	envs, err := gotenv.StrictParse(file)
	if err != nil {
		return errors.Wrap(err, "failed to parse .env file")
	}

	for key, value := range envs {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}

		if err := setEnvFn(key, value); err != nil {
			return errors.Wrapf(err, "failed to set env %s", key)
		}
	}

	return nil
}
