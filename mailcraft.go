// Package mailcraft provides the document model behind the drag-and-drop
// email and landing-page builder: typed content blocks, the drop-zone
// reorder engine, and the property-panel binding rules.
package mailcraft

// Version is the release of the mailcraft module.
const Version = "0.1.0-dev"
