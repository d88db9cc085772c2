// Package speech defines the speech sink used by the flat review presenter
// together with a logging sink and an in-memory recorder.
package speech
