// Package core provides the dashboard's domain logic on top of the admin API.
//
// The package knows the records the API serves (users, subjects and tasks),
// the routes that serve them and the rules forms must pass before anything
// is sent. It has no HTML and no HTTP handlers; the web package renders
// what it returns.
//
// # Service
//
// [Service] wraps an [apiclient.Client] and an optional query cache. One
// Service is built at startup and each request works on a copy bound to the
// caller's session:
//
//	svc := core.NewService(client, cache, activity)
//	s := svc.Session(sess.ID, sess, sess.User.Email)
//	page, err := s.ListUsers(ctx, core.UserQuery{ListQuery: core.ListQuery{Page: 1, PageSize: 5}})
//
// Reads go through the cache. Every successful mutation drops the cached
// reads of the resources it touched and appends an entry to the shared
// [Activity] feed.
//
// A [MutationLimiter] attached with [Service.WithLimiter] caps the writes in
// flight; a mutation that cannot get a slot fails with [ErrTooManyMutations].
//
// # Partial Updates
//
// Changing a user's access takes two API calls, role first and then status.
// [Service.UpdateUserAccess] sends only the halves that changed and reports
// which succeeded. Nothing is rolled back when the second call fails.
//
// # Validation
//
// Forms ([TaskForm], [SubjectForm], [ProfileForm], [LoginForm],
// [AccessForm]) are validated by [Validator], which reports messages keyed
// by the json name of each field.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - API001-API005: API errors (not found, rejected, unavailable)
//   - AUTH001-AUTH004: Authentication errors (token, credentials, session)
//   - VAL001-VAL002: Validation errors (forms, malformed ids)
//   - NET001-NET005: Network errors (refused, reset, timeout, cancelled)
package core
