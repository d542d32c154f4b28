package mysql

const schemaSQL = `
CREATE TABLE IF NOT EXISTS places (
  id         VARCHAR(64)   NOT NULL,
  name       VARCHAR(255)  NOT NULL,
  lat        DOUBLE        NOT NULL,
  lon        DOUBLE        NOT NULL,
  categories JSON          NULL,
  hours      JSON          NULL,
  ratings    JSON          NULL,
  address    VARCHAR(512)  NULL,
  image_url  VARCHAR(1024) NULL,
  raw        JSON          NULL,
  created_at TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_places_lat_lon (lat, lon)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertPlacesPrefix = "INSERT INTO places\n  (id, name, lat, lon, categories, hours, ratings, address, image_url, raw)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertPlacesOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  name       = VALUES(name),\n" +
	"  lat        = VALUES(lat),\n" +
	"  lon        = VALUES(lon),\n" +
	"  categories = VALUES(categories),\n" +
	"  hours      = VALUES(hours),\n" +
	"  ratings    = VALUES(ratings),\n" +
	"  address    = COALESCE(VALUES(address), places.address),\n" +
	"  image_url  = COALESCE(VALUES(image_url), places.image_url),\n" +
	"  raw        = VALUES(raw),\n" +
	"  updated_at = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getPlaceSQL = `
SELECT id, name, lat, lon, categories, hours, ratings, address, image_url, raw
FROM places
WHERE id = ?
`

// Bounding-box prefilter on the (lat, lon) index; callers refine with the
// exact great-circle distance afterwards.
const listPlacesSQL = `
SELECT id, name, lat, lon, categories, hours, ratings, address, image_url, raw
FROM places
WHERE lat BETWEEN ? AND ?
  AND lon BETWEEN ? AND ?
LIMIT ?
`
