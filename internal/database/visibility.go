package database

// Every owner-facing query applies the same visibility rule: the tracker
// belongs to the calling owner and is not soft-deleted. The fragments below
// keep that rule in one place; owner id is always bound as $1 wherever they
// appear.
const (
	// visibleTrackers filters the trackers table itself
	visibleTrackers = `owner_id = $1 AND deleted_at IS NULL`

	// visibleTrackerIDs is the subquery form child-table queries join against
	visibleTrackerIDs = `(SELECT id FROM trackers WHERE owner_id = $1 AND deleted_at IS NULL)`
)
