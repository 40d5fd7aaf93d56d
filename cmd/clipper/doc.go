// Command clipper turns a gameplay recording into vertical highlight clips.
//
// "clipper serve" exposes the pipeline over HTTP; the remaining commands run
// it in-process or inspect the data directory directly.
package main
