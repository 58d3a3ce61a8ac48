// Package domain models ecological field-survey data and its enrichment.
//
// # Data Source
//
// Records originate from semicolon-separated CSV exports of a survey
// administration system: observations (waarnemingen), field visits
// (veldbezoeken) and projects (projecten). Column names are Dutch and
// occasionally carry pandas-style disambiguation suffixes such as
// "Veldbezoek ID...23"; the csvio adapter resolves both spellings.
//
// # Survey Protocol Codes
//
// A field-visit name embeds the survey protocol it was run under:
//
//	VM01, VM02, VM03, ...  →  bat protocol rounds (Vleermuisprotocol)
//	GZ                     →  evening roost counts relative to sunset
//	ZR                     →  morning roost counts relative to sunrise
//	HM, UITVLIEGTELLING    →  miscellaneous counts, no timing convention
//
// Matching is case-insensitive, separators ("VM-1", "vm 1") are stripped,
// single-digit VM codes are zero-padded (VM1 → VM01) and the legacy "WM"
// prefix is a known typo for "VM" and rewritten before padding.
// See [ExtractProtocol].
//
// A day part ("avond" = evening, "ochtend" = morning) with an optional
// Arabic or Roman ordinal distinguishes repeated same-day sessions:
// "VM01 avond II" is the second evening round.
//
// # Suggested Times
//
// Survey protocols define the biologically meaningful window in terms
// relative to sunrise or sunset (bat emergence starts near sunset), while
// reported start/end times are typed in by hand and routinely off. The
// suggestion engine clamps reported times into the protocol's acceptance
// window around the astronomical anchor; values outside the window are
// replaced with the canonical bound, not merely flagged. See [SuggestTimes]
// for the rule registry and the per-code windows.
//
// Sunrise and sunset come from a precise ephemeris when usable and from a
// built-in NOAA low-precision approximation otherwise; both are expressed
// in the project's civil timezone (Europe/Amsterdam unless configured).
// Missing solar data is a data-quality signal, never a fatal error: the
// review flagger marks such rows for manual audit. See [Estimator] and
// [NeedsReview].
package domain
