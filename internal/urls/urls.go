package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://muurk.github.io/brlreview/

// GettingStarted is the quick start guide for new users.
const GettingStarted = "https://muurk.github.io/brlreview/getting-started/"

// SceneFormat describes the scene files that stand in for windows,
// with a reference of roles, states and text attributes.
const SceneFormat = "https://muurk.github.io/brlreview/reference/scenes/"

// DisplaySetup covers running brlreview-display, TLS and mDNS.
const DisplaySetup = "https://muurk.github.io/brlreview/guides/virtual-display/"

// TroubleshootingGuide provides solutions to common discovery,
// connection and configuration issues.
const TroubleshootingGuide = "https://muurk.github.io/brlreview/troubleshooting/"
