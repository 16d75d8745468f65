package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/filmorate/internal/model"
)

// MySQLStore implements Store on top of the schema created by
// database.Migrate. Every operation that touches more than one statement
// runs inside a transaction: writes in a read-write one, multi-query reads
// in a READ ONLY one so they observe a single snapshot.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a store bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying handle for health checks and shutdown.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// Ping verifies the database is reachable.
func (s *MySQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// queryer is the subset of *sql.DB and *sql.Tx used by the loaders.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var readOnly = &sql.TxOptions{ReadOnly: true}

// withTx runs fn in a transaction and commits when fn returns nil.
func (s *MySQLStore) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	return fn(tx)
}

// ---- users ----

const userColumns = `u.id, u.email, u.login, u.name, u.birthday, u.password_hash`

func scanUser(sc interface{ Scan(...any) error }) (model.User, error) {
	var (
		u    model.User
		hash sql.NullString
	)
	if err := sc.Scan(&u.ID, &u.Email, &u.Login, &u.Name, &u.Birthday, &hash); err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash.String
	u.Friends = map[uint64]model.FriendshipStatus{}
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *MySQLStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, login, name, birthday, password_hash) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.Login, u.Name, u.Birthday, nullString(u.PasswordHash))
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u = u.Clone()
	u.ID = uint64(id)
	u.Friends = map[uint64]model.FriendshipStatus{}
	return u, nil
}

func (s *MySQLStore) GetUser(ctx context.Context, id uint64) (model.User, error) {
	var out model.User
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		users := []model.User{u}
		if err := loadFriendEdges(ctx, tx, users); err != nil {
			return err
		}
		out = users[0]
		return nil
	})
	return out, err
}

// GetUserByLogin returns the user with the lowest id carrying login.
func (s *MySQLStore) GetUserByLogin(ctx context.Context, login string) (model.User, error) {
	var out model.User
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users u WHERE u.login = ? ORDER BY u.id LIMIT 1`, login))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		users := []model.User{u}
		if err := loadFriendEdges(ctx, tx, users); err != nil {
			return err
		}
		out = users[0]
		return nil
	})
	return out, err
}

func (s *MySQLStore) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	var out model.User
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, u.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET email = ?, login = ?, name = ?, birthday = ?, password_hash = ? WHERE id = ?`,
			u.Email, u.Login, u.Name, u.Birthday, nullString(u.PasswordHash), u.ID); err != nil {
			return err
		}
		out = u.Clone()
		users := []model.User{out}
		if err := loadFriendEdges(ctx, tx, users); err != nil {
			return err
		}
		out = users[0]
		return nil
	})
	return out, err
}

func (s *MySQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		users, err := queryUsers(ctx, tx, `SELECT `+userColumns+` FROM users u ORDER BY u.id`)
		if err != nil {
			return err
		}
		out = users
		return loadFriendEdges(ctx, tx, out)
	})
	return out, err
}

// ---- friendships ----

func (s *MySQLStore) InsertFriendship(ctx context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error) {
	var inserted bool
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := requireUsers(ctx, tx, actorID, targetID); err != nil {
			return err
		}
		// ON DUPLICATE KEY with a self-assignment leaves an existing edge
		// untouched and reports 0 affected rows.
		res, err := tx.ExecContext(ctx,
			`INSERT INTO user_friends (user_id, friend_id, status) VALUES (?, ?, ?)
			 ON DUPLICATE KEY UPDATE status = status`,
			actorID, targetID, string(status))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n == 1
		return nil
	})
	return inserted, err
}

func (s *MySQLStore) UpdateFriendshipStatus(ctx context.Context, actorID, targetID uint64, status model.FriendshipStatus) (bool, error) {
	var changed bool
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var cur string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM user_friends WHERE user_id = ? AND friend_id = ? FOR UPDATE`,
			actorID, targetID).Scan(&cur)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFriendshipNotFound
			}
			return err
		}
		if model.FriendshipStatus(cur) == status {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE user_friends SET status = ? WHERE user_id = ? AND friend_id = ?`,
			string(status), actorID, targetID); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func (s *MySQLStore) DeleteFriendship(ctx context.Context, actorID, targetID uint64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_friends WHERE user_id = ? AND friend_id = ?`, actorID, targetID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MySQLStore) ListFriends(ctx context.Context, userID uint64) ([]model.User, error) {
	var out []model.User
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		if err := requireUsers(ctx, tx, userID); err != nil {
			return err
		}
		users, err := queryUsers(ctx, tx,
			`SELECT `+userColumns+` FROM user_friends uf
			 JOIN users u ON u.id = uf.friend_id
			 WHERE uf.user_id = ? ORDER BY u.id`, userID)
		if err != nil {
			return err
		}
		out = users
		return loadFriendEdges(ctx, tx, out)
	})
	return out, err
}

func (s *MySQLStore) ListCommonFriends(ctx context.Context, aID, bID uint64) ([]model.User, error) {
	var out []model.User
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		if err := requireUsers(ctx, tx, aID, bID); err != nil {
			return err
		}
		users, err := queryUsers(ctx, tx,
			`SELECT `+userColumns+` FROM user_friends a
			 JOIN user_friends b ON b.friend_id = a.friend_id
			 JOIN users u ON u.id = a.friend_id
			 WHERE a.user_id = ? AND b.user_id = ? ORDER BY u.id`, aID, bID)
		if err != nil {
			return err
		}
		out = users
		return loadFriendEdges(ctx, tx, out)
	})
	return out, err
}

// ---- films ----

const filmColumns = `f.id, f.name, f.description, f.release_date, f.duration, m.id, m.name`

func (s *MySQLStore) CreateFilm(ctx context.Context, f model.Film) (model.Film, error) {
	out := f.Clone()
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO films (name, description, release_date, duration, mpa_id) VALUES (?, ?, ?, ?, ?)`,
			f.Name, f.Description, f.ReleaseDate, f.Duration, f.MPA.ID)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		out.ID = uint64(id)
		return insertFilmGenres(ctx, tx, out.ID, f.Genres)
	})
	if err != nil {
		return model.Film{}, err
	}
	out.Likes = map[uint64]struct{}{}
	return out, nil
}

func (s *MySQLStore) GetFilm(ctx context.Context, id uint64) (model.Film, error) {
	var out model.Film
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		films, err := queryFilms(ctx, tx,
			`SELECT `+filmColumns+` FROM films f JOIN mpa m ON m.id = f.mpa_id WHERE f.id = ?`, id)
		if err != nil {
			return err
		}
		if len(films) == 0 {
			return ErrFilmNotFound
		}
		if err := loadFilmRelations(ctx, tx, films); err != nil {
			return err
		}
		out = films[0]
		return nil
	})
	return out, err
}

// UpdateFilm replaces the film row and rewrites its genre links in one
// transaction. Likes are kept.
func (s *MySQLStore) UpdateFilm(ctx context.Context, f model.Film) (model.Film, error) {
	var out model.Film
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, `SELECT id FROM films WHERE id = ? FOR UPDATE`, f.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFilmNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ? WHERE id = ?`,
			f.Name, f.Description, f.ReleaseDate, f.Duration, f.MPA.ID, f.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = ?`, f.ID); err != nil {
			return err
		}
		if err := insertFilmGenres(ctx, tx, f.ID, f.Genres); err != nil {
			return err
		}
		films := []model.Film{f.Clone()}
		if err := loadLikes(ctx, tx, films); err != nil {
			return err
		}
		out = films[0]
		return nil
	})
	return out, err
}

func (s *MySQLStore) ListFilms(ctx context.Context) ([]model.Film, error) {
	var out []model.Film
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		films, err := queryFilms(ctx, tx,
			`SELECT `+filmColumns+` FROM films f JOIN mpa m ON m.id = f.mpa_id ORDER BY f.id`)
		if err != nil {
			return err
		}
		out = films
		return loadFilmRelations(ctx, tx, out)
	})
	return out, err
}

// PopularFilms ranks films by like count in SQL. Films without likes
// take part through the LEFT JOIN with a count of zero.
func (s *MySQLStore) PopularFilms(ctx context.Context, count int) ([]model.Film, error) {
	var out []model.Film
	err := s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		films, err := queryFilms(ctx, tx,
			`SELECT `+filmColumns+` FROM films f
			 JOIN mpa m ON m.id = f.mpa_id
			 LEFT JOIN film_likes fl ON fl.film_id = f.id
			 GROUP BY f.id, f.name, f.description, f.release_date, f.duration, m.id, m.name
			 ORDER BY COUNT(fl.user_id) DESC, f.id ASC
			 LIMIT ?`, count)
		if err != nil {
			return err
		}
		out = films
		return loadFilmRelations(ctx, tx, out)
	})
	return out, err
}

// ---- likes ----

func (s *MySQLStore) AddLike(ctx context.Context, filmID, userID uint64) (bool, error) {
	var changed bool
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := requireFilm(ctx, tx, filmID); err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO film_likes (film_id, user_id) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE film_id = film_id`, filmID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		changed = n == 1
		return nil
	})
	return changed, err
}

func (s *MySQLStore) RemoveLike(ctx context.Context, filmID, userID uint64) (bool, error) {
	var changed bool
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if err := requireFilm(ctx, tx, filmID); err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`, filmID, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		changed = n > 0
		return nil
	})
	return changed, err
}

// ---- helpers ----

func lockRow(ctx context.Context, q queryer, query string, id uint64) error {
	var got uint64
	return q.QueryRowContext(ctx, query, id).Scan(&got)
}

// requireUsers returns ErrUserNotFound unless every id exists.
func requireUsers(ctx context.Context, q queryer, ids ...uint64) error {
	distinct := make(map[uint64]struct{}, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, dup := distinct[id]; dup {
			continue
		}
		distinct[id] = struct{}{}
		args = append(args, id)
	}
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id IN (`+placeholders(len(args))+`)`, args...).Scan(&n); err != nil {
		return err
	}
	if n != len(args) {
		return ErrUserNotFound
	}
	return nil
}

func requireFilm(ctx context.Context, q queryer, id uint64) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM films WHERE id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrFilmNotFound
	}
	return nil
}

func queryUsers(ctx context.Context, q queryer, query string, args ...any) ([]model.User, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// loadFriendEdges fills the Friends map of every user in one query.
func loadFriendEdges(ctx context.Context, q queryer, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(users))
	args := make([]any, 0, len(users))
	for i := range users {
		users[i].Friends = map[uint64]model.FriendshipStatus{}
		index[users[i].ID] = i
		args = append(args, users[i].ID)
	}
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, friend_id, status FROM user_friends WHERE user_id IN (`+placeholders(len(args))+`)`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			userID, friendID uint64
			status           string
		)
		if err := rows.Scan(&userID, &friendID, &status); err != nil {
			return err
		}
		if i, ok := index[userID]; ok {
			users[i].Friends[friendID] = model.FriendshipStatus(status)
		}
	}
	return rows.Err()
}

func queryFilms(ctx context.Context, q queryer, query string, args ...any) ([]model.Film, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Film, 0)
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.ReleaseDate, &f.Duration, &f.MPA.ID, &f.MPA.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func loadFilmRelations(ctx context.Context, q queryer, films []model.Film) error {
	if err := loadGenres(ctx, q, films); err != nil {
		return err
	}
	return loadLikes(ctx, q, films)
}

func filmIndex(films []model.Film) (map[uint64]int, []any) {
	index := make(map[uint64]int, len(films))
	args := make([]any, 0, len(films))
	for i := range films {
		index[films[i].ID] = i
		args = append(args, films[i].ID)
	}
	return index, args
}

// loadGenres fills Genres in link order for every film in one query.
func loadGenres(ctx context.Context, q queryer, films []model.Film) error {
	if len(films) == 0 {
		return nil
	}
	index, args := filmIndex(films)
	for i := range films {
		films[i].Genres = []model.Genre{}
	}
	rows, err := q.QueryContext(ctx,
		`SELECT fg.film_id, g.id, g.name FROM film_genres fg
		 JOIN genres g ON g.id = fg.genre_id
		 WHERE fg.film_id IN (`+placeholders(len(args))+`)
		 ORDER BY fg.film_id, fg.position`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			filmID uint64
			g      model.Genre
		)
		if err := rows.Scan(&filmID, &g.ID, &g.Name); err != nil {
			return err
		}
		if i, ok := index[filmID]; ok {
			films[i].Genres = append(films[i].Genres, g)
		}
	}
	return rows.Err()
}

func loadLikes(ctx context.Context, q queryer, films []model.Film) error {
	if len(films) == 0 {
		return nil
	}
	index, args := filmIndex(films)
	for i := range films {
		films[i].Likes = map[uint64]struct{}{}
	}
	rows, err := q.QueryContext(ctx,
		`SELECT film_id, user_id FROM film_likes WHERE film_id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var filmID, userID uint64
		if err := rows.Scan(&filmID, &userID); err != nil {
			return err
		}
		if i, ok := index[filmID]; ok {
			films[i].Likes[userID] = struct{}{}
		}
	}
	return rows.Err()
}

// insertFilmGenres writes all genre links in a single multi-row INSERT.
func insertFilmGenres(ctx context.Context, q queryer, filmID uint64, genres []model.Genre) error {
	if len(genres) == 0 {
		return nil
	}
	query := `INSERT INTO film_genres (film_id, genre_id, position) VALUES `
	args := make([]any, 0, len(genres)*3)
	for i, g := range genres {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, filmID, g.ID, i)
	}
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
