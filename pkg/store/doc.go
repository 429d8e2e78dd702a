// Package store provides storage abstractions for the verifier.
//
// This package defines interfaces for the read-only database inspection the
// checks perform, so that the checks are decoupled from GORM and can be tested
// with substituted stores.
//
// # Sessions
//
// Each check acquires its own Session and closes it when done:
//
//	sess, err := st.Session(ctx)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//	tables, err := sess.TableNames()
//
// The GORM implementation lives in the gorm subpackage.
package store
