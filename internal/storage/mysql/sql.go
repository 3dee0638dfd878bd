package mysql

// id = LAST_INSERT_ID(id) makes LastInsertId report the existing row on update.
const upsertLocationSQL = `
INSERT INTO locations
  (slug, title, introduction, address, lat, lon, live)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id           = LAST_INSERT_ID(id),
  title        = VALUES(title),
  introduction = VALUES(introduction),
  address      = VALUES(address),
  lat          = VALUES(lat),
  lon          = VALUES(lon),
  live         = VALUES(live),
  updated_at   = CURRENT_TIMESTAMP
`

const deleteHoursSQL = `DELETE FROM location_operating_hours WHERE location_id = ?`

const insertHoursPrefix = "INSERT INTO location_operating_hours\n  (location_id, sort_order, day, opening_time, closing_time, closed)\nVALUES "

const deleteLocationSQL = `DELETE FROM locations WHERE slug = ?`

const insertMissSQL = `
INSERT INTO ingest_misses (slug, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const locationColumns = `id, slug, title, introduction, address, lat, lon, live, updated_at`

const getLocationSQL = `SELECT ` + locationColumns + ` FROM locations WHERE slug = ?`

// Index page order: live locations by title.
const listLocationsSQL = `
SELECT ` + locationColumns + `
FROM locations
WHERE live = TRUE
ORDER BY title, id
LIMIT ?
`

// Hours keep editorial order; id breaks ties between equal sort_order values.
const hoursForLocationsPrefix = `
SELECT location_id, day, opening_time, closing_time, closed, sort_order
FROM location_operating_hours
WHERE location_id IN (`

const hoursForLocationsSuffix = `)
ORDER BY location_id, sort_order, id
`
