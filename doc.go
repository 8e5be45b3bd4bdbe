// Package auth issues and validates user credentials and access tokens, and
// enforces role-integrity invariants for an authentication service.
//
// Credentials:
//   - Passwords are hashed with Argon2id and stored in the PHC style string
//     format. VerifyPassword also accepts the legacy flat base64(salt||hash)
//     format written by the retired scheme, so old accounts keep working
//     without a migration. Only the standard format is ever produced.
//
// Tokens:
//   - TokenIssuer signs HS256 JWTs carrying subject, a fresh token id, the
//     issuance time from an injected ClockSource, and the user's resolved
//     role. A user without a role membership still gets a token with the
//     default USER role claim.
//
// Roles:
//   - RoleAssignmentCoordinator applies role changes as a single serialized
//     transaction. The admin-count check and the membership replace happen
//     inside the same transaction boundary so the last administrator can
//     never be demoted, even under concurrent demotion requests.
package auth
