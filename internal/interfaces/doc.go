// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Storage Interfaces
//
//   - registry.Storage: library file access (implemented by library.Store)
//   - registry.Preferences: the persisted current-library choice
//     (settingsstore.SettingsStore, or settingsstore.Memory when the
//     preferences database is unavailable)
//
// ## Host Interfaces
//
//   - http.LibraryRegistry: registry operations exposed over HTTP
//   - http.Pinger: health checks for backing services
//   - http.PreferenceInfo: reports where the library preference is stored
//   - http.Autosave: scheduler state and on-demand saves
//   - autosave.Saver: flushes changed libraries on a schedule
//
// # Adding a New Preference Backend
//
//  1. Implement registry.Preferences:
//
//     type RedisPreferences struct { client *redis.Client }
//
//     func (p *RedisPreferences) CurrentWordLib() (string, bool)
//     func (p *RedisPreferences) SetCurrentWordLib(name string) error
//     func (p *RedisPreferences) ClearCurrentWordLib() error
//
//  2. Add a compile-time check to checks.go.
//
//  3. Pass it to registry.New in entrypoint.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
