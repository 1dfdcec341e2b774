// Package dataset loads point sets for clustering from a blobstore.
//
// A point is an identifier plus a float vector. Three layouts are read:
//
//   - CSV with a header row; the "id" column (configurable) names the point
//     and every other column is one vector component
//   - a JSON array of {"id": ..., "vector": [...]} objects
//   - JSON lines, one such object per line
//
// Any of them may be gzip, zstd or lz4 (frame) compressed. Compression is
// detected from the leading magic bytes, the layout from the file extension
// or, failing that, from the first non-blank byte.
package dataset
