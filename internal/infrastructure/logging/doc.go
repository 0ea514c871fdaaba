// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components take a *Logger and derive a named child:
//
//	logger := logging.NewDefault()
//	storeLog := logger.Named("store")
//	storeLog.Info("app installed", zap.String("id", appID))
package logging
