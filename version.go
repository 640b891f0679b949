package chatbridge

// Version is set at build time with -ldflags "-X github.com/a-h/chatbridge.Version=...".
var Version = "devel"
