// Package profiles implements the member profile CRUD routes that sit behind
// the authentication guard.
//
// A profile is the public face of an auth user: display name, unique
// username, bio, avatar and city. Each user owns at most one profile
// (user_id is unique), and only the owner — or a moderation role — may
// modify or delete it.
//
// Routes are mounted as a chi sub-router:
//
//	pool, err := pg.Connect(ctx, pgCfg)
//	if err != nil { ... }
//	storage := profiles.NewStorage(pool)
//	mux.Mount("/profiles", profiles.NewRouter(storage, manager))
//
// Responses use a stable envelope: the resource under "profile" or
// "profiles" on success, an "error" object with a machine-readable code
// otherwise. Validation failures return 400 with per-field messages.
package profiles
