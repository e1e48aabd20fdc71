// Package transfer moves a whole Database in and out of the process.
//
// Export writes the snapshot verbatim as indented JSON (or YAML). Import
// accepts a document as a replacement Database only if it carries a
// "sections" list of objects; anything else is rejected with a
// MALFORMED_IMPORT error and no Database is produced. A successful import
// of an export reproduces the exported Database exactly, attempt histories
// included.
package transfer
