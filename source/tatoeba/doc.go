// Package tatoeba adapts a sentence corpus to the source interface.
//
// Every lookup returns exactly one result. Its headword is the query
// and its Examples are the corpus sentences containing it, so merging
// it into a dictionary entry attaches example sentences.
package tatoeba
