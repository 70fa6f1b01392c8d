// Package report renders troubleshooter results as console tables, JSON, YAML
// or Markdown.
package report
