// Package password hashes and verifies user passwords with argon2id.
//
// Hashes are encoded in the PHC string format
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
//
// with unpadded standard base64 for salt and digest, so they stay verifiable
// by any argon2 implementation that reads the same format. Verify reads the
// cost parameters back from the encoded string.
package password
