package sqlstore

// Both aggregates come from one statement so the pair is always consistent.
const recomputeRatingSQL = `
UPDATE properties
SET average_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE property_id = ?), 0),
    total_reviews  = (SELECT COUNT(*) FROM reviews WHERE property_id = ?)
WHERE id = ?`

const joinLocationsSQL = `JOIN locations ON locations.id = properties.location_id`

// A property matches when it carries every requested amenity.
const amenitiesAllSQL = `properties.id IN (
  SELECT property_id FROM property_amenities
  WHERE amenity_id IN ?
  GROUP BY property_id
  HAVING COUNT(DISTINCT amenity_id) = ?)`

const hasExperiencesSQL = `EXISTS (SELECT 1 FROM property_experiences pe WHERE pe.property_id = properties.id)`

// Blocked windows overlapping the stay [check_in, check_out).
const blockedDuringSQL = `properties.id NOT IN (
  SELECT property_id FROM availabilities
  WHERE is_available = ? AND start_date < ? AND end_date >= ?)`

const locationMatchSQL = `(LOWER(locations.city) LIKE ? ESCAPE '!' OR LOWER(locations.country) LIKE ? ESCAPE '!')`

const searchSQL = `(LOWER(properties.title) LIKE ? ESCAPE '!'
  OR LOWER(properties.description) LIKE ? ESCAPE '!'
  OR LOWER(locations.city) LIKE ? ESCAPE '!'
  OR LOWER(COALESCE(locations.state, '')) LIKE ? ESCAPE '!'
  OR LOWER(locations.country) LIKE ? ESCAPE '!'
  OR LOWER(locations.address) LIKE ? ESCAPE '!')`

const joinPropertyExperiencesSQL = `JOIN property_experiences pe ON pe.experience_id = experiences.id`

const joinExperiencePropertiesSQL = `JOIN property_experiences pe ON pe.property_id = properties.id`
