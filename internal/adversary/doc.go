// Package adversary implements the adversarial verification engine: given
// simulated redacted text, it models how an attacker would re-identify the
// subject from what remains. Three stages feed an aggregate confidence:
// attribute leakage extraction, semantic fingerprinting (population
// narrowing), and cross-reference risk assessment, followed by ranked
// mitigation suggestions.
//
// The engine is total: for any well-formed input it returns a defined,
// possibly neutral result rather than an error, because a crash in this
// advisory path is worse than an overly conservative score. It is stateless
// aside from held configuration, which is snapshotted at call entry;
// iteration counts and previous confidence belong to the caller.
package adversary
