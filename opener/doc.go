// Package opener locates and reads yay documents.
//
// A Mux reads http(s) URLs with retries and everything else from a
// filesystem (the OS filesystem by default, any afero.Fs otherwise),
// looking relative names up in a list of search directories. Names
// containing glob meta characters expand, through Expand, to the sorted
// list of matching files.
package opener
