package db

const userCols = `
	u.id,
	u.email,
	u.password,
	u.first_name,
	u.last_name,
	u.phone_number,
	u.role,
	u.is_active,
	u.last_login_at,
	u.created_at,
	u.updated_at
`

const userGetByIDQ = `SELECT` + userCols + `FROM users u
WHERE u.id = $1
`

const userGetByEmailQ = `SELECT` + userCols + `FROM users u
WHERE LOWER(u.email) = LOWER($1)
`

const userCreateQ = `
INSERT INTO users (id, email, password, first_name, last_name, phone_number, role, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at
`

const userUpdateLastLoginQ = `
UPDATE users
SET last_login_at = $2
WHERE id = $1
`
