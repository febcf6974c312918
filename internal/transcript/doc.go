// Package transcript loads expert panel output files as review documents.
package transcript
