package db

const refreshTokenCols = `
	id,
	family_id,
	user_id,
	token_digest,
	previous_token_digest,
	generation,
	expires_at,
	used_at,
	revoked_at,
	revoke_reason,
	ip_address,
	user_agent,
	device_id,
	created_at
`

const findByDigestQ = `SELECT` + refreshTokenCols + `FROM refresh_tokens
WHERE token_digest = $1
FOR UPDATE
`

const findByPreviousDigestQ = `SELECT` + refreshTokenCols + `FROM refresh_tokens
WHERE previous_token_digest = $1
FOR UPDATE
`

const findFamilyQ = `SELECT` + refreshTokenCols + `FROM refresh_tokens
WHERE family_id = $1
ORDER BY generation
`

const insertRefreshTokenQ = `
INSERT INTO refresh_tokens (
	id, family_id, user_id, token_digest, previous_token_digest, generation,
	expires_at, ip_address, user_agent, device_id, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const markUsedQ = `
UPDATE refresh_tokens
SET used_at = $2
WHERE id = $1 AND used_at IS NULL
`

const revokeTokenQ = `
UPDATE refresh_tokens
SET revoked_at = $2, revoke_reason = $3
WHERE id = $1 AND revoked_at IS NULL
`

const revokeFamilyQ = `
UPDATE refresh_tokens
SET revoked_at = $2, revoke_reason = $3
WHERE family_id = $1 AND revoked_at IS NULL
`

const revokeUserTokensQ = `
UPDATE refresh_tokens
SET revoked_at = $2, revoke_reason = $3
WHERE user_id = $1 AND revoked_at IS NULL
`

const deleteExpiredTokensQ = `
DELETE FROM refresh_tokens
WHERE expires_at < $1
`
