package log

import "log/slog"

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func SubstepID[T ~string](id T) slog.Attr {
	return slog.String("substep_id", string(id))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Handler(name string) slog.Attr {
	return slog.String("handler", name)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
