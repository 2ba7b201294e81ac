package logging

import "github.com/rs/zerolog/log"

func Debugf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func Errf(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

