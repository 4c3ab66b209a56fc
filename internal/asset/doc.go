// Package asset provides the pretrained model asset download for the
// kiln CLI.
//
// The fetcher manages exactly one kind of resource: a binary file at a
// fixed path, downloaded once from a fixed URL. There is no checksum
// verification — integrity is trusted to the transfer layer, which is a
// deliberate, documented gap rather than an oversight. The download is
// streamed to a ".partial" sibling and renamed into place on success,
// so an interrupted transfer never leaves a truncated file that would
// pass the next run's existence check.
package asset
