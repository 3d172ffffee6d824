package tournamentdomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResultFingerprint hashes every field of a result that affects the table.
// Two submissions under the same identity with different fingerprints mean the
// result log and the table may have diverged and need a rebuild.
func ResultFingerprint(r MatchResult) string {
	payload := fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%s",
		r.ID, r.Home, r.Away, r.HomeScore, r.AwayScore, r.HomeTries, r.AwayTries, r.Status)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
