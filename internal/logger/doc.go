// Package logger wraps zap for the app-version binaries:
//   - a global sugared logger with a console encoder on stderr, so stdout
//     only carries command output,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
