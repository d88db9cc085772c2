// Package logging provides structured logging for brlreview.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used throughout the braille engine, the virtual display
// transport and the CLIs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (braille lines, cell masks, websocket frames)
//   - Info: Normal operations (device ready, client connected)
//   - Warn: Non-fatal issues (device teardown, contraction failures, retries)
//   - Error: Fatal issues (startup failures)
//
// # Structured Logging
//
// All log functions use structured fields:
//
//	logging.Warn("Contraction failed, using uncontracted text",
//	    zap.String("table", table),
//	    zap.Error(err),
//	)
//
// # Specialized Logging
//
// Device lifecycle:
//
//	logging.LogDeviceEvent("ready", token, zap.Int("width", 40))
//	logging.LogDeviceEvent("teardown", token, zap.Error(err))
//
// Rendering:
//
//	logging.LogBrailleLine(line, visible, cursorCell)
//	logging.LogCells("Attribute mask", mask)
//
// # Configuration
//
// Logging is silent unless a level is given, either explicitly or through
// BRLREVIEW_LOG_LEVEL:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Terminal user interfaces log to a file instead of stderr:
//
//	logging.InitializeWithOutput("debug", "/tmp/brlreview.log")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically. Initialize and SetLogger are meant to
// be called once at startup.
package logging
