// Package ranking decides which fetched items count as new releases and in what
// order they are shown.
//
// The pipeline applies it in three steps:
//
//   - FilterAndScore keeps items inside the new release window (-30..+45 days
//     around the reference date) and attaches NewReleaseScore.
//   - ApplyFinalScores folds in the weight of the source query that produced each item.
//   - SelectTop picks the top N by FinalScore while capping any one content type.
//
// All functions are pure; the reference date is always passed in.
package ranking
