package captureRepository

const (
	queryCreateCapture = `
INSERT INTO liveness_captures (id, session_id, user_id, image_url, content_type, size_bytes, required_frames, accepted_at, created_at)
VALUES (:id, :session_id, :user_id, :image_url, :content_type, :size_bytes, :required_frames, :accepted_at, :created_at)`

	queryGetBySessionID = `
SELECT id, session_id, user_id, image_url, content_type, size_bytes, required_frames, accepted_at, created_at
FROM liveness_captures
    WHERE session_id = :session_id`

	queryListByUserID = `
SELECT id, session_id, user_id, image_url, content_type, size_bytes, required_frames, accepted_at, created_at
FROM liveness_captures
    WHERE user_id = :user_id
ORDER BY created_at DESC
LIMIT :limit`
)
