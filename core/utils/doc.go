// Package utils provides the text and number coercion helpers used while reading Cobalto rows.
//
// NormalizeText is applied to every name and category field before comparison or storage.
// ToInt and ToFloat treat nil, "" and "null" as absent and fail with ErrInvalidNumber on
// anything else that is not a number. ToInt truncates, it never rounds.
package utils
