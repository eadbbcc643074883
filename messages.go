package main

// DiagnosticMsg carries an internal diagnostic event for the debug tab.
type DiagnosticMsg struct {
	Label   string
	Message string
}
