package database

// schema holds the MySQL DDL, one statement per entry because the driver
// runs without multiStatements.  restaurant_tables.restaurant_id is UNIQUE
// so a restaurant can never own more than one inventory row, and the CHECK
// constraint keeps available within [0, total].
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		username      VARCHAR(20)  NOT NULL,
		email         VARCHAR(120) NOT NULL,
		address       TEXT         NOT NULL,
		contact       VARCHAR(32)  NOT NULL,
		role          ENUM('CUSTOMER','RESTAURANT') NOT NULL DEFAULT 'CUSTOMER',
		image_file    VARCHAR(64)  NOT NULL DEFAULT 'default.jpg',
		password_hash VARCHAR(60)  NOT NULL,
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		total         INT NOT NULL,
		available     INT NOT NULL,
		UNIQUE KEY uq_tables_restaurant (restaurant_id),
		CONSTRAINT chk_tables_bounds CHECK (total >= 0 AND available >= 0 AND available <= total),
		CONSTRAINT fk_tables_restaurant FOREIGN KEY (restaurant_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_id   BIGINT UNSIGNED NOT NULL,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		table_count   INT NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_customer (customer_id, created_at),
		KEY idx_bookings_restaurant (restaurant_id, created_at),
		CONSTRAINT chk_bookings_count CHECK (table_count > 0),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users(id),
		CONSTRAINT fk_bookings_restaurant FOREIGN KEY (restaurant_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title         VARCHAR(100) NOT NULL,
		content       TEXT NOT NULL,
		sentiment     DECIMAL(3,2) NOT NULL,
		customer_id   BIGINT UNSIGNED NOT NULL,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_reviews_restaurant (restaurant_id, created_at),
		CONSTRAINT chk_reviews_sentiment CHECK (sentiment >= 0 AND sentiment <= 1),
		CONSTRAINT fk_reviews_customer FOREIGN KEY (customer_id) REFERENCES users(id),
		CONSTRAINT fk_reviews_restaurant FOREIGN KEY (restaurant_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS posts (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title         VARCHAR(100) NOT NULL,
		content       TEXT NOT NULL,
		category      VARCHAR(20) NOT NULL,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_posts_created (created_at),
		CONSTRAINT fk_posts_restaurant FOREIGN KEY (restaurant_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS media (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title         VARCHAR(100) NOT NULL,
		image_file    VARCHAR(64) NOT NULL,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_media_restaurant (restaurant_id),
		CONSTRAINT fk_media_restaurant FOREIGN KEY (restaurant_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}
