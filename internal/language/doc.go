// Package language maps language names and ISO 639 codes to the two-letter
// codes WhisperX accepts for --language.
package language
