// Package token implements the JWT layer of the session subsystem.
//
// A Manager signs access and refresh tokens with a shared HS256 secret and
// distinct lifetimes, stamping every token with the configured issuer and
// audience plus a "typ" claim that keeps the two kinds apart. Parse verifies
// signature, issuer, audience, and expiry, and reports failures as one of
// three distinct outcomes: expired, malformed, or wrong token type.
//
// Usage:
//
//	mgr, err := token.NewManager(token.Config{
//		Secret:     secret,
//		Issuer:     "pantrypal",
//		Audience:   "pantrypal-web",
//		AccessTTL:  15 * time.Minute,
//		RefreshTTL: 7 * 24 * time.Hour,
//	})
//	pair, err := mgr.IssuePair(userID, email)
//	claims, err := mgr.Parse(pair.AccessToken, token.TypeAccess)
package token
