// Package library scans local music directories for artist tags.
//
// A [Scanner] walks each directory with [filepath.WalkDir], reads tags only from files whose extension is
// allow-listed, and folds every artist into a [models.ArtistSet]. A file whose tag cannot be read is logged
// and recorded in [ScanResult.Skipped]; it never stops the walk.
package library
