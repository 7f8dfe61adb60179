package db

const organizationClaimsQ = `
SELECT om.organization_id AS id, om.role
FROM organization_members om
WHERE om.user_id = $1
ORDER BY om.organization_id
`

const projectClaimsQ = `
SELECT pm.project_id AS id, p.organization_id, pm.role
FROM project_members pm
JOIN projects p ON p.id = pm.project_id
WHERE pm.user_id = $1
ORDER BY pm.project_id
`
