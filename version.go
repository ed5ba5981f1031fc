package elicitation

// Version is the library and CLI version, overridden at build time with
// -ldflags "-X github.com/aretw0/elicitation.Version=...".
var Version = "0.1.0-dev"
