// Package morph is an offline source built on kagome morphological
// analysis with the IPA dictionary.
//
// It has no glossary. It contributes readings and dictionary forms,
// which merge into entries from the remote dictionaries that share
// the same headword.
package morph
