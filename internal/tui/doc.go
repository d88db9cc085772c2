// Package tui implements the interactive flat review terminal UI for the
// brlreview command.
//
// The application has two screens:
//
//   - Discovery: browses mDNS for virtual braille displays advertised by
//     brlreview-display, with manual URL entry and a monitor-only choice.
//   - Review: the window's review lines with the cursor line marked, the
//     last speech, and a braille monitor of what the display shows.
//
// AppModel coordinates the screens. Review commands run on the session's
// loop through session.Session.Do; frames rendered on the loop reach the
// UI through a Feed, so display keys pressed on the braille display show
// up without a keypress in the terminal.
//
// Every screen is wrapped with RenderApplicationContainer, which draws the
// header, the screen content and the context-sensitive help footer.
package tui
