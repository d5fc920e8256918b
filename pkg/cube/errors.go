package cube

import "cubefind/pkg/cubeerr"

func requireErr(op, msg string) error {
	return cubeerr.Wrapf(cubeerr.ErrUserInput, "%s: %s", op, msg)
}

func requireIntErr(op string, got DType) error {
	return cubeerr.Wrapf(cubeerr.ErrUserInput, "%s requires an integer-typed mask cube, got type %d", op, got)
}
