package db

const countFailedAttemptsQ = `
SELECT COUNT(*)
FROM failed_login_attempts
WHERE email = $1 AND ip_address = $2 AND attempted_at >= $3
`

const createFailedAttemptQ = `
INSERT INTO failed_login_attempts (email, ip_address, user_agent, reason, attempted_at)
VALUES ($1, $2, $3, $4, $5)
`

const deleteFailedAttemptsQ = `
DELETE FROM failed_login_attempts
WHERE email = $1 AND ip_address = $2
`

const deleteStaleAttemptsQ = `
DELETE FROM failed_login_attempts
WHERE attempted_at < $1
`
