// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package store provides the in-memory session store for lumina-tui.

The store is the single source of truth for chat state: the ordered session
collection (newest first) and the active-session pointer. All mutation flows
through copy-on-write operations so that snapshots returned to the UI remain
stable while streaming turns commit fragments concurrently.

# Key Types

  - Store: mutex-guarded session collection with copy-on-write operations.

# Usage

	st := store.New()
	sess := st.CreateSession()
	msg, _ := st.AppendUserMessage(sess.ID, "hello", nil)
	st.BeginModelMessage(sess.ID, replyID)
	st.AppendFragment(sess.ID, replyID, "Hi")
	st.FinalizeMessage(sess.ID, replyID)

Operations addressed at unknown session or message ids are silent no-ops,
never panics: a stale id means a racing turn outlived its session, which is
an expected hazard of streaming.
*/
package store
