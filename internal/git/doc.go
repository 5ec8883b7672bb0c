// Package git checks that pph recovery files stay out of version control.
//
// Checks performed:
//   - Whether the vault or an exported recovery file is tracked (should not be)
//   - Whether it is covered by .gitignore (should be)
package git
