// Package domain contains the core entities of the spaced-repetition system:
// decks, cards, per-user scheduling state, immutable review events, and
// derived forgetting predictions. Entities validate themselves; all scheduling
// mutations go through the srs subpackage.
package domain
