package postgres

import "time"

type Option func(*Postgres)

func MaxPoolSize(size int32) Option {
	return func(p *Postgres) {
		if size > 0 {
			p.maxPoolSize = size
		}
	}
}

func ConnAttempts(attempts int) Option {
	return func(p *Postgres) {
		if attempts > 0 {
			p.connAttempts = attempts
		}
	}
}

func ConnDelay(delay time.Duration) Option {
	return func(p *Postgres) {
		if delay > 0 {
			p.connDelay = delay
		}
	}
}
