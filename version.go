package treealign

// Version is the library release version.
var Version = "0.1.0"
