// Package quiz manages the questions attached to a door.
//
// A door's quiz is always replaced as a whole: the old questions are deleted
// and the new set inserted inside one transaction, so readers never observe
// a half-written quiz. Question generation is delegated to a Generator.
package quiz
