// Package mediadate recovers the best-available creation time of a media file.
//
// Sources are consulted in order: EXIF DateTimeOriginal for TIFF/JPEG based
// stills, the QuickTime/MP4 movie header for video containers, timestamps
// embedded in camera filenames, and finally the filesystem modification time.
// Each source can be disabled through Options. When nothing usable is found the
// extractor returns an error wrapping services.ErrMetadataUnavailable so the
// planner can route the file to the unrecognized folder.
package mediadate
